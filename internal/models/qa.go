package models

// Image is a raster image supplied with a question
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mimeType"`
}

// QAQuery is a question about an image. At least one of Prompt and Image
// must be present for the model to be called.
type QAQuery struct {
	Prompt string `json:"prompt,omitempty"`
	Image  *Image `json:"image,omitempty"`
}

// Empty reports whether the query carries neither prompt nor image
func (q QAQuery) Empty() bool {
	return q.Prompt == "" && (q.Image == nil || len(q.Image.Data) == 0)
}

// QAResponse is the verbatim model text
type QAResponse struct {
	Text string `json:"answer"`
}

// Upload is a single artifact handed in by a caller
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}
