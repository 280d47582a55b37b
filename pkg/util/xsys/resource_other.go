//go:build !linux && !darwin

package xsys

// RaiseFileLimit 在 Linux 和 macOS 以外的平台上校验参数后返回 [ErrUnsupportedPlatform]。
func RaiseFileLimit(want uint64) (uint64, error) {
	if err := validateFileLimit(want); err != nil {
		return 0, err
	}
	return 0, ErrUnsupportedPlatform
}

// GetFileLimit 在 Linux 和 macOS 以外的平台上返回 [ErrUnsupportedPlatform]。
func GetFileLimit() (soft, hard uint64, err error) {
	return 0, 0, ErrUnsupportedPlatform
}
