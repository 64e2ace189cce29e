package models

// RemoteFile is one entry of a drive listing.
type RemoteFile struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Size   int64   `json:"size"`
	WebURL string  `json:"webUrl"`
	Folder *Folder `json:"folder,omitempty"`
}

// Folder is present on listing entries that are directories.
type Folder struct {
	ChildCount int `json:"childCount"`
}

func (f RemoteFile) IsFolder() bool {
	return f.Folder != nil
}

// Document is the decoded form of a downloaded file. Either Text or Err is
// meaningful, never both.
type Document struct {
	Name string
	Text string
	Err  error
}

func (d Document) Failed() bool {
	return d.Err != nil
}

// Match records a document that passed the relevance filter. The document
// body is not kept; it is handed to the Reporter and then released.
type Match struct {
	File      RemoteFile
	Answer    string
	AnswerErr error
}

type SearchResult struct {
	QueryID  string
	Query    string
	Keywords []string
	Scanned  int
	Matches  []Match
	FoundAny bool
}
