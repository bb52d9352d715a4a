package stt

import (
	"encoding/binary"
	"testing"
)

func TestFloat32ToWAV(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1.5, -1.5}
	data, err := float32ToWAV(samples, 16000)
	if err != nil {
		t.Fatalf("float32ToWAV: %v", err)
	}

	if want := 44 + len(samples)*2; len(data) != want {
		t.Fatalf("length = %d, want %d", len(data), want)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Error("missing fmt/data chunks")
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", got, len(samples)*2)
	}

	want := []int16{0, 16383, -16383, 32767, -32767}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(data[44+i*2 : 46+i*2]))
		if got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestFloat32ToWAV_Empty(t *testing.T) {
	data, err := float32ToWAV(nil, 16000)
	if err != nil {
		t.Fatalf("float32ToWAV: %v", err)
	}
	if len(data) != 44 {
		t.Errorf("length = %d, want header only (44)", len(data))
	}
}
