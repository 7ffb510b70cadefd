// pkg/segment/mmap_test.go
package segment

import "testing"

func TestOSRegionReserve(t *testing.T) {
	r, err := ReserveOSRegion(4096)
	if err != nil {
		t.Fatalf("failed to reserve region: %v", err)
	}
	defer r.Close()

	if r.Size() != 4096 {
		t.Errorf("expected size 4096, got %d", r.Size())
	}
}

func TestOSRegionZeroFilled(t *testing.T) {
	r, err := ReserveOSRegion(4096)
	if err != nil {
		t.Fatalf("failed to reserve region: %v", err)
	}
	defer r.Close()

	for i, b := range r.Slice(0, 4096) {
		if b != 0 {
			t.Fatalf("expected zero-filled region, byte %d = %d", i, b)
		}
	}
}

func TestOSRegionReadWrite(t *testing.T) {
	r, err := ReserveOSRegion(4096)
	if err != nil {
		t.Fatalf("failed to reserve region: %v", err)
	}
	defer r.Close()

	data := r.Slice(100, 11)
	copy(data, []byte("hello world"))

	got := r.Slice(100, 11)
	if string(got) != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", got)
	}
}

func TestOSRegionGrow(t *testing.T) {
	r, err := ReserveOSRegion(4096)
	if err != nil {
		t.Fatalf("failed to reserve region: %v", err)
	}
	defer r.Close()

	copy(r.Slice(0, 5), []byte("page1"))

	if err := r.Grow(8192); err != nil {
		t.Fatalf("grow failed: %v", err)
	}
	if r.Size() != 8192 {
		t.Errorf("expected size 8192 after grow, got %d", r.Size())
	}
	if string(r.Slice(0, 5)) != "page1" {
		t.Error("data lost after grow")
	}
}

func TestOSRegionInvalidSize(t *testing.T) {
	if _, err := ReserveOSRegion(0); err == nil {
		t.Error("expected error reserving a zero-size region")
	}
	if _, err := ReserveOSRegion(-1); err == nil {
		t.Error("expected error reserving a negative-size region")
	}
}
