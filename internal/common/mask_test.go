package common

import "testing"

func TestMaskMobile(t *testing.T) {
	tests := []struct {
		name   string
		mobile string
		want   string
	}{
		{name: "standard number", mobile: "9876543210", want: "98****3210"},
		{name: "all same digit", mobile: "1111111111", want: "11****1111"},
		{name: "too short", mobile: "12345", want: "12345"},
		{name: "empty", mobile: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskMobile(tt.mobile); got != tt.want {
				t.Errorf("MaskMobile(%q) = %q; want %q", tt.mobile, got, tt.want)
			}
		})
	}
}
