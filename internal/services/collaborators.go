package services

import "context"

// Mailer dispatches a notification email. A delivery failure is returned
// to the caller, never swallowed.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// ImageStore hosts user avatars externally. Upload takes a local file path
// and returns the public URL of the hosted copy; Destroy removes a
// previously hosted image identified by that URL.
type ImageStore interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Destroy(ctx context.Context, url string) error
}
