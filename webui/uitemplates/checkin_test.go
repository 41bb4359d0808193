package uitemplates

import (
	"bytes"
	"strings"
	"testing"
)

func TestCheckInPageHasScannerAndManualEntry(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := CheckInTemplate.Execute(buf, &CheckInParams{EventID: "e1", EventTitle: "Go Meetup Berlin"}); err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}

	page := buf.String()
	for _, want := range []string{
		"scanner-video",
		"jsQR",
		"getUserMedia",
		`name="registration"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("Rendered check-in page missing %q", want)
		}
	}
}
