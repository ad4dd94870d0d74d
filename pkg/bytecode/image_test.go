package bytecode

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// imageFixture builds a chunk exercising every serializable constant kind.
func imageFixture(t *testing.T) *Chunk {
	t.Helper()
	c := NewChunk()
	if err := c.WriteConstant(IntValue(-42), 1); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteConstant(FloatValue(2.5), 1); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteConstant(BoolValue(true), 2); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteConstant(NullValue(), 2); err != nil {
		t.Fatal(err)
	}
	if err := c.AddStringConstant("hello", 3); err != nil {
		t.Fatal(err)
	}
	// Drain the pushes so the chunk stays balanced for a real run.
	c.WriteOp(OpEqual, 3)
	c.WriteOp(OpEqual, 3)
	c.WriteOp(OpEqual, 3)
	c.WriteOp(OpEqual, 3)
	c.WriteOp(OpReturn, 4)
	return c
}

func TestImageRoundTrip(t *testing.T) {
	c := imageFixture(t)
	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatalf("MarshalChunk failed: %v", err)
	}
	if !bytes.HasPrefix(data, ImageMagic) {
		t.Error("image missing TVBC magic prefix")
	}

	got, err := UnmarshalChunk(data)
	if err != nil {
		t.Fatalf("UnmarshalChunk failed: %v", err)
	}
	if !bytes.Equal(got.Code, c.Code) {
		t.Error("code section changed across round trip")
	}
	if len(got.Lines) != len(c.Lines) {
		t.Fatalf("line table length changed: %d vs %d", len(got.Lines), len(c.Lines))
	}
	for i := range c.Lines {
		if got.Lines[i] != c.Lines[i] {
			t.Errorf("line[%d] = %d, want %d", i, got.Lines[i], c.Lines[i])
		}
	}
	if got.ConstantCount() != c.ConstantCount() {
		t.Fatalf("constant count changed: %d vs %d", got.ConstantCount(), c.ConstantCount())
	}
	for i := 0; i < c.ConstantCount(); i++ {
		if !got.GetConstant(i).Equals(c.GetConstant(i)) {
			t.Errorf("constant %d = %s, want %s", i, got.GetConstant(i), c.GetConstant(i))
		}
	}
}

func TestImageIsDeterministic(t *testing.T) {
	c := imageFixture(t)
	a, err := MarshalChunk(c)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalChunk(c)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding should be deterministic")
	}
}

func TestUnmarshalRejectsBadMagic(t *testing.T) {
	c := imageFixture(t)
	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'
	if _, err := UnmarshalChunk(data); err == nil || !strings.Contains(err.Error(), "magic") {
		t.Errorf("expected magic error, got %v", err)
	}
	if _, err := UnmarshalChunk([]byte{'T', 'V'}); err == nil {
		t.Error("short input must be rejected")
	}
}

func TestUnmarshalValidatesChunk(t *testing.T) {
	// A structurally broken chunk must not survive deserialization
	// even if the CBOR body itself decodes.
	bad := imageChunk{
		Version: ImageVersion,
		Code:    []byte{byte(OpConstant), 9}, // index 9, empty pool
		Lines:   []int{1, 1},
	}
	body, err := cborEncMode.Marshal(&bad)
	if err != nil {
		t.Fatal(err)
	}
	data := append(append([]byte{}, ImageMagic...), body...)
	if _, err := UnmarshalChunk(data); err == nil {
		t.Error("malformed chunk accepted from image")
	}
}

func TestImageFileRoundTrip(t *testing.T) {
	c := imageFixture(t)
	path := filepath.Join(t.TempDir(), "fixture.tvc")
	if err := WriteImageFile(path, c); err != nil {
		t.Fatalf("WriteImageFile failed: %v", err)
	}
	got, err := ReadImageFile(path)
	if err != nil {
		t.Fatalf("ReadImageFile failed: %v", err)
	}

	// The reloaded chunk must actually run.
	vm := NewVM()
	var out bytes.Buffer
	vm.SetOutput(&out)
	if err := vm.Interpret(got); err != nil {
		t.Fatalf("reloaded chunk failed to run: %v", err)
	}
}

func TestReadImageFileMissing(t *testing.T) {
	if _, err := ReadImageFile(filepath.Join(t.TempDir(), "nope.tvc")); err == nil {
		t.Error("expected error for missing file")
	}
}
