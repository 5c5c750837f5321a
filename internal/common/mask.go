package common

// MaskMobile hides the middle four digits of a 10-digit mobile number,
// e.g. "9876543210" -> "98****3210". Shorter inputs are returned as-is.
func MaskMobile(mobile string) string {
	if len(mobile) != 10 {
		return mobile
	}
	return mobile[:2] + "****" + mobile[6:]
}
