package dto

// TwoFactorSetupResult holds the provisioning material returned once when
// TOTP setup is initiated. The secret, backup codes and recovery key are
// never retrievable again in plaintext.
type TwoFactorSetupResult struct {
	Secret      string
	OTPAuthURL  string
	QRCodeImage string
	BackupCodes []string
	RecoveryKey string
}

// TwoFactorStatus summarizes a user's second-factor state.
type TwoFactorStatus struct {
	Enabled              bool
	BackupCodesRemaining int
}
