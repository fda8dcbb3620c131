package upstream

import "context"

// ValidatePhone checks and canonicalizes a phone number for a region.
func (c *Client) ValidatePhone(ctx context.Context, phoneNumber, region string) (*ValidatePhoneResult, error) {
	var result ValidatePhoneResult
	err := c.postJSON(ctx, "validatePhone", "/validate-phone", validatePhoneRequest{
		PhoneNumber: phoneNumber,
		Region:      region,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SendCode asks the upstream to deliver a verification code.
// Delivery itself (SMS or otherwise) is entirely the upstream's concern.
func (c *Client) SendCode(ctx context.Context, phoneNumber string) error {
	return c.postJSON(ctx, "sendCode", "/send_2fa", phoneRequest{PhoneNumber: phoneNumber}, nil)
}

// VerifyCode checks a verification code for a phone number.
func (c *Client) VerifyCode(ctx context.Context, phoneNumber, code string) (*VerifyCodeResult, error) {
	var result VerifyCodeResult
	err := c.postJSON(ctx, "verifyCode", "/verify_2fa", verifyCodeRequest{
		PhoneNumber:      phoneNumber,
		VerificationCode: code,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
