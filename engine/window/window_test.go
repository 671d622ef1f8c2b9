package window

import "testing"

func TestWindowBuilderDefaults(t *testing.T) {
	w := newEngineWindow()
	if w.Width() != 600 || w.Height() != 600 || !w.resizable {
		t.Errorf("defaults = %dx%d resizable=%v", w.Width(), w.Height(), w.resizable)
	}
}

func TestWindowBuilderOptions(t *testing.T) {
	w := newEngineWindow(
		WithTitle("sphere"),
		WithWidth(800),
		WithHeight(450),
		WithResizable(false),
	)
	if w.Title() != "sphere" || w.Width() != 800 || w.Height() != 450 || w.resizable {
		t.Errorf("options not applied: %+v", w)
	}
}

func TestUnspawnedWindow(t *testing.T) {
	w := newEngineWindow()
	if w.IsRunning() {
		t.Error("unspawned window reports running")
	}
	if w.SurfaceDescriptor() != nil {
		t.Error("unspawned window returned a surface descriptor")
	}
	if err := w.Close(); err == nil {
		t.Error("closing an unspawned window should fail")
	}
	// Returns immediately because the window is not running.
	w.ProcessMessages()
}

func TestCallbacksAreStored(t *testing.T) {
	w := newEngineWindow()
	var gotW, gotH int
	var key uint32
	w.SetResizeCallback(func(width, height int) { gotW, gotH = width, height })
	w.SetKeyDownCallback(func(k uint32) { key = k })
	w.SetUpdateCallback(func() {})

	w.onResize(10, 20)
	w.onKeyDown(87)
	if gotW != 10 || gotH != 20 || key != 87 || w.onUpdate == nil {
		t.Errorf("callbacks not wired: %d %d %d", gotW, gotH, key)
	}
}
