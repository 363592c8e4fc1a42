package meetlink

import (
	"errors"
	"regexp"
	"strings"
)

// Details holds the identifiers extracted from a meeting link.
type Details struct {
	MeetingID string
	Passcode  string
}

var (
	meetingIDPattern = regexp.MustCompile(`/j/(\d+)`)
	passcodePattern  = regexp.MustCompile(`[?&]pwd=([\w.]+)`)
)

// ErrNoMeetingID indicates the link carried no recognizable meeting number.
var ErrNoMeetingID = errors.New("meeting link contains no meeting id")

// Parse extracts the meeting number and passcode from a Zoom join link.
// The passcode is optional; a link without one yields an empty Passcode.
func Parse(link string) (Details, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return Details{}, ErrNoMeetingID
	}

	var details Details
	if m := meetingIDPattern.FindStringSubmatch(link); m != nil {
		details.MeetingID = m[1]
	}
	if m := passcodePattern.FindStringSubmatch(link); m != nil {
		details.Passcode = m[1]
	}
	if details.MeetingID == "" {
		return Details{}, ErrNoMeetingID
	}
	return details, nil
}
