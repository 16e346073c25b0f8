package types

// ExtractIngredientsRequest is the body of the extraction endpoint.
type ExtractIngredientsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// MatchTemplateRequest is the body of the template matching endpoint.
type MatchTemplateRequest struct {
	Text string `json:"text"`
}

// VerifyIngredientRequest toggles catalog verification.
type VerifyIngredientRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// SetAdminRequest toggles a user's admin flag.
type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

// PhotoUploadRequest asks for a presigned meal photo upload.
type PhotoUploadRequest struct {
	ContentType string `json:"content_type"`
}
