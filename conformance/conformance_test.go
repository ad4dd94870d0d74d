package conformance

import "testing"

func TestConformance(t *testing.T) {
	suites, err := LoadAllSuites(TestDataDir)
	if err != nil {
		t.Fatalf("loading fixtures: %v", err)
	}

	for _, loaded := range suites {
		loaded := loaded
		t.Run(loaded.Suite.Name, func(t *testing.T) {
			for i := range loaded.Suite.Tests {
				tc := &loaded.Suite.Tests[i]
				t.Run(tc.Name, func(t *testing.T) {
					if err := Run(tc); err != nil {
						t.Errorf("%s: %v", loaded.File, err)
					}
				})
			}
		})
	}
}

func TestBuildChunkRejectsUnknownMnemonic(t *testing.T) {
	tc := &TestCase{
		Name:    "bad",
		Program: []Instruction{{Op: "FROB"}},
	}
	if _, err := BuildChunk(tc); err == nil {
		t.Error("unknown mnemonic accepted")
	}
}
