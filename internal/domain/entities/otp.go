package entities

// OTPSession is the provider-issued handle for one OTP delivery.
// It must be passed back unmodified when verifying the code.
type OTPSession struct {
	SessionID string `json:"session_id"`
}

// OTPVerdict is the outcome of checking a code against a session
type OTPVerdict string

const (
	OTPVerified OTPVerdict = "verified"
	OTPRejected OTPVerdict = "rejected"
)

// OTPVerification is the normalized provider answer to a verify call
type OTPVerification struct {
	Verdict OTPVerdict
	// Details is the provider's free-form explanation, e.g. "OTP Mismatch"
	Details string
}

// Verified reports whether the provider accepted the code
func (v *OTPVerification) Verified() bool {
	return v != nil && v.Verdict == OTPVerified
}

// SendOTPInput represents input for sending an OTP
type SendOTPInput struct {
	Phone string `json:"phone"`
}

// VerifyOTPInput represents input for verifying an OTP
type VerifyOTPInput struct {
	SessionID string `json:"session_id"`
	OTP       string `json:"otp"`
}
