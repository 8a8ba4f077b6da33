package services

import "testing"

func TestS3PublicURL(t *testing.T) {
	s := &S3Client{bucketName: "yovibe-event-media", region: "eu-west-1"}

	t.Run("Shape", func(t *testing.T) {
		got := s.PublicURL("events/Boat_Party/poster.jpg")
		want := "https://yovibe-event-media.s3.eu-west-1.amazonaws.com/events/Boat_Party/poster.jpg"
		if got != want {
			t.Errorf("PublicURL = %q, want %q", got, want)
		}
	})

	t.Run("LeadingSlashTrimmed", func(t *testing.T) {
		if got := s.PublicURL("/a/b.jpg"); got != "https://yovibe-event-media.s3.eu-west-1.amazonaws.com/a/b.jpg" {
			t.Errorf("PublicURL = %q", got)
		}
	})
}
