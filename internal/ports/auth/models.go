package auth

// Claims representa la información extraída del token del proveedor hosted.
type Claims struct {
	UserID string
	Email  string
}
