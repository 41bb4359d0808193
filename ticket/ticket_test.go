package ticket

import (
	"bytes"
	"testing"
	"time"

	"konvele/dbtypes"
)

func testEvent() *dbtypes.Event {
	return &dbtypes.Event{
		ID:       "evt-1",
		Title:    "Go Meetup Berlin",
		Date:     time.Date(2026, time.September, 12, 18, 0, 0, 0, time.UTC),
		Location: "c-base",
	}
}

func testRegistration() *dbtypes.Registration {
	return &dbtypes.Registration{
		ID:        "abcdef1234567890",
		EventID:   "evt-1",
		UserName:  "Ada Lovelace",
		UserEmail: "ada@example.com",
	}
}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG("abcdef1234567890", 256)
	if err != nil {
		t.Fatalf("Error from QRPNG: %v", err)
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("Expected PNG output; got leading bytes %v", png[:4])
	}
}

func TestPDF(t *testing.T) {
	out, err := PDF(testEvent(), testRegistration())
	if err != nil {
		t.Fatalf("Error from PDF: %v", err)
	}

	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("Expected PDF output; got leading bytes %q", out[:4])
	}
}

func TestFileName(t *testing.T) {
	got := FileName(testEvent(), testRegistration())
	want := "ticket-go-meetup-berlin-34567890.pdf"
	if got != want {
		t.Errorf("Bad file name; got %q, want %q", got, want)
	}
}

func TestFileNameShortRegistrationID(t *testing.T) {
	reg := testRegistration()
	reg.ID = "ab12"

	got := FileName(testEvent(), reg)
	want := "ticket-go-meetup-berlin-ab12.pdf"
	if got != want {
		t.Errorf("Bad file name; got %q, want %q", got, want)
	}
}
