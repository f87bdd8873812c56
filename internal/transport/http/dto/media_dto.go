package dto

type MediaUploadResponse struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}
