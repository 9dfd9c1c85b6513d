package domain

// Mime types assigned to generated entries.
const (
	MimeTextPlain = "text/plain"
	MimeTextHTML  = "text/html"
)

// VirtualFile is one in-memory training-data item, whatever its origin
// (typed URL, pasted text, dropped or picked file). Name is unique within a
// session for files that came through the drop path.
type VirtualFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Content  []byte `json:"content"`
}

// NewVirtualFile builds a VirtualFile with Size derived from content.
func NewVirtualFile(name, mimeType string, content []byte) VirtualFile {
	return VirtualFile{
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(content)),
		Content:  content,
	}
}

// InputSeed is the caller-supplied initial state of an input session.
type InputSeed struct {
	Counter    int           `json:"counter"`
	Files      []VirtualFile `json:"files"`
	ShowButton bool          `json:"showButton"`
}

// InputState is a snapshot of an input session.
type InputState struct {
	SessionID       string        `json:"sessionId"`
	TextFileCounter int           `json:"textFileCounter"`
	Files           []VirtualFile `json:"files"`
	PendingURL      string        `json:"pendingUrl"`
	PendingText     string        `json:"pendingText"`
	ReviewFlag      bool          `json:"reviewFlag"`
	ShowButton      bool          `json:"showButton"`
	Done            bool          `json:"done"`
}

// CanProceed reports whether the "next step" action is offered.
func (s InputState) CanProceed() bool {
	return len(s.Files) > 0 && s.ShowButton && !s.Done
}

// InputsChanged is the payload of the change notification.
type InputsChanged struct {
	SessionID string        `json:"sessionId"`
	Counter   int           `json:"counter"`
	Files     []VirtualFile `json:"files"`
}

// InputsDone is the payload of the completion notification.
type InputsDone struct {
	SessionID      string `json:"sessionId"`
	ManuallyReview bool   `json:"manuallyReview"`
	FileCount      int    `json:"fileCount"`
}

// FileView is the listing row the form renders under the inputs.
type FileView struct {
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"sizeLabel"`
	Icon      string `json:"icon"`
}
