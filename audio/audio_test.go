package audio

import (
	"reflect"
	"testing"
)

func names(devices []DeviceInfo) []string {
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.Name
	}
	return out
}

func devList(ns ...string) []DeviceInfo {
	out := make([]DeviceInfo, len(ns))
	for i, n := range ns {
		out[i] = DeviceInfo{ID: n, Name: n}
	}
	return out
}

func TestRankPrefersAnalog(t *testing.T) {
	got := Rank(devList("USB Webcam", "ALC294 Analog", "Headset Mic"))
	want := []string{"ALC294 Analog", "USB Webcam", "Headset Mic"}
	if !reflect.DeepEqual(names(got), want) {
		t.Errorf("Rank = %v, want %v", names(got), want)
	}
}

func TestRankExcludesHDMI(t *testing.T) {
	got := Rank(devList("HDMI Output", "Built-in Analog", "hdmi 2"))
	want := []string{"Built-in Analog"}
	if !reflect.DeepEqual(names(got), want) {
		t.Errorf("Rank = %v, want %v", names(got), want)
	}
}

func TestRankKeepsHDMIAnalogCombo(t *testing.T) {
	got := Rank(devList("HDMI / Analog Combo"))
	if len(got) != 1 {
		t.Fatalf("combo device was excluded: %v", names(got))
	}
}

func TestRankFallsBackWhenAllExcluded(t *testing.T) {
	got := Rank(devList("HDMI 0", "HDMI 1"))
	want := []string{"HDMI 0", "HDMI 1"}
	if !reflect.DeepEqual(names(got), want) {
		t.Errorf("Rank = %v, want %v", names(got), want)
	}
}

func TestRankIsStable(t *testing.T) {
	in := devList("Mic A", "Analog 1", "Mic B", "Analog 2", "Mic C")
	first := names(Rank(in))
	want := []string{"Analog 1", "Analog 2", "Mic A", "Mic B", "Mic C"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("Rank = %v, want %v", first, want)
	}
	// Re-ranking the same raw list yields the same order.
	for i := 0; i < 5; i++ {
		if got := names(Rank(in)); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Rank = %v, want %v", i, got, first)
		}
	}
}

func TestRankEmptyList(t *testing.T) {
	if got := Rank(nil); len(got) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", got)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS(make([]int16, 100)); got != 0 {
		t.Errorf("RMS(silence) = %v, want 0", got)
	}
	loud := RMS(LoudSamples(100))
	if loud < 0.2 || loud > 0.3 {
		t.Errorf("RMS(loud) = %v, want ~0.24", loud)
	}
}

func TestMeterLevel(t *testing.T) {
	if got := MeterLevel(0); got != 0 {
		t.Errorf("MeterLevel(0) = %d, want 0", got)
	}
	if got := MeterLevel(1.0); got != 20 {
		t.Errorf("MeterLevel(1.0) = %d, want 20 (clamped)", got)
	}
	if got := MeterLevel(0.1); got != 6 {
		t.Errorf("MeterLevel(0.1) = %d, want 6", got)
	}
}
