package domain

// vspeedUnit is the FR24 vertical speed quantum: raw values count 1/64 ft/min steps.
const vspeedUnit = 64

// DecodeVerticalSpeed converts a raw FR24 vspeed into feet per minute.
// A nil input means the field was absent and is returned unchanged.
func DecodeVerticalSpeed(raw *int) *int {
	if raw == nil {
		return nil
	}
	fpm := *raw * vspeedUnit
	return &fpm
}
