package respond

// LoginRespond 客服登录响应
type LoginRespond struct {
	StaffId      string `json:"staffId"`
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
