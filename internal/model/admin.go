package model

// AdminLoginRequest is the payload for the question bank admin login.
type AdminLoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,notblank,max=255"`
	Password string `json:"password" form:"password" binding:"required,max=255"`
}
