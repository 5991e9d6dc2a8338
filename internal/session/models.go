package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of a scan session.
type Status string

const (
	StatusPending      Status = "pending"
	StatusChecking     Status = "checking"
	StatusScanning     Status = "scanning"
	StatusTransferring Status = "transferring"
	StatusMerging      Status = "merging"
	StatusNaming       Status = "naming"
	StatusUploading    Status = "uploading"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusChecking,
	StatusScanning,
	StatusTransferring,
	StatusMerging,
	StatusNaming,
	StatusUploading,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the session.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// PageStatus tracks one page through scan and transfer.
type PageStatus string

const (
	PagePending     PageStatus = "pending"
	PageScanned     PageStatus = "scanned"
	PageTransferred PageStatus = "transferred"
	PageFailed      PageStatus = "failed"
)

// Page records one scanned page's remote and local locations and status.
type Page struct {
	Number     int
	RemotePath string
	LocalPath  string
	Status     PageStatus
	Attempts   int
}

// Session is the mutable state of one scanpi invocation. Pages are kept in
// scan order; the merge stage relies on that ordering.
type Session struct {
	ID           string
	Format       string
	Resolution   int
	Status       Status
	BatchDir     string
	TempBatchDir bool
	Pages        []Page
	OutputPath   string
	Uploaded     bool
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// New creates a pending session for the given document format and resolution.
func New(format string, resolution int) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Format:     format,
		Resolution: resolution,
		Status:     StatusPending,
		StartedAt:  time.Now().UTC(),
	}
}

// AddPage appends a pending page and returns a pointer to it. Page numbers
// are 1-based and assigned in scan order.
func (s *Session) AddPage(remotePath string) *Page {
	s.Pages = append(s.Pages, Page{
		Number:     len(s.Pages) + 1,
		RemotePath: remotePath,
		Status:     PagePending,
	})
	return &s.Pages[len(s.Pages)-1]
}

// Page returns the page with the given 1-based number, or nil.
func (s *Session) Page(number int) *Page {
	if number < 1 || number > len(s.Pages) {
		return nil
	}
	return &s.Pages[number-1]
}

// PageCount returns the number of pages recorded so far.
func (s *Session) PageCount() int {
	return len(s.Pages)
}

// RemotePaths returns the remote file paths in scan order.
func (s *Session) RemotePaths() []string {
	paths := make([]string, 0, len(s.Pages))
	for _, page := range s.Pages {
		paths = append(paths, page.RemotePath)
	}
	return paths
}

// LocalPaths returns the local file paths in scan order.
func (s *Session) LocalPaths() []string {
	paths := make([]string, 0, len(s.Pages))
	for _, page := range s.Pages {
		paths = append(paths, page.LocalPath)
	}
	return paths
}

// AllScanned reports whether every page reached at least the scanned state.
func (s *Session) AllScanned() bool {
	for _, page := range s.Pages {
		if page.Status != PageScanned && page.Status != PageTransferred {
			return false
		}
	}
	return len(s.Pages) > 0
}

// AllTransferred reports whether every page reached the transferred state.
func (s *Session) AllTransferred() bool {
	for _, page := range s.Pages {
		if page.Status != PageTransferred {
			return false
		}
	}
	return len(s.Pages) > 0
}

// SetFailed marks the session failed with the given message.
func (s *Session) SetFailed(message string) {
	s.Status = StatusFailed
	s.ErrorMessage = message
	s.FinishedAt = time.Now().UTC()
}

// SetCompleted marks the session completed.
func (s *Session) SetCompleted() {
	s.Status = StatusCompleted
	s.ErrorMessage = ""
	s.FinishedAt = time.Now().UTC()
}
