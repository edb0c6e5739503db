package media

// Download is a server-side file delivery: the handler writes Content
// with a content-disposition attachment header instead of the browser
// Blob-and-anchor trick the client version used.
type Download struct {
	Filename string
	MIMEType string
	Content  []byte
}

func BuildDownload(content []byte, filename, mimeType string) Download {
	if mimeType == "" {
		mimeType = "text/plain"
	}
	return Download{
		Filename: filename,
		MIMEType: mimeType,
		Content:  content,
	}
}
