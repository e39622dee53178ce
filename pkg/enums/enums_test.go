package enums

import "testing"

func TestParseAdStatus(t *testing.T) {
	for _, status := range AdStatuses() {
		got, err := ParseAdStatus(status.String())
		if err != nil || got != status {
			t.Fatalf("expected %s to round trip, got %s err=%v", status, got, err)
		}
	}

	legacy, err := ParseAdStatus("em-analise")
	if err != nil || legacy != AdStatusInReview {
		t.Fatalf("expected legacy status to map to in-review, got %s err=%v", legacy, err)
	}

	if _, err := ParseAdStatus("archived"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestAdStatusIsPublic(t *testing.T) {
	if AdStatusDeleted.IsPublic() {
		t.Fatal("deleted ads must not be public")
	}
	if !AdStatusInReview.IsPublic() || !AdStatusActive.IsPublic() {
		t.Fatal("expected in-review and active ads to be public")
	}
	if AdStatus("bogus").IsPublic() {
		t.Fatal("unknown status must not be public")
	}
}

func TestParseAdType(t *testing.T) {
	for _, raw := range []string{"normal", "priority", "professional"} {
		if _, err := ParseAdType(raw); err != nil {
			t.Fatalf("expected %s to parse: %v", raw, err)
		}
	}
	if _, err := ParseAdType("premium"); err == nil {
		t.Fatal("expected unknown type to fail")
	}
}

func TestMediaKindKeyPrefix(t *testing.T) {
	if MediaKindAvatar.KeyPrefix() != "avatars" {
		t.Fatalf("unexpected avatar prefix %s", MediaKindAvatar.KeyPrefix())
	}
	if MediaKindAdImage.KeyPrefix() != "ads" {
		t.Fatalf("unexpected ad prefix %s", MediaKindAdImage.KeyPrefix())
	}
}

func TestEventTypeIsEngagement(t *testing.T) {
	if !EventAdViewed.IsEngagement() || !EventAdWhatsAppClicked.IsEngagement() {
		t.Fatal("expected view and click events to be engagement")
	}
	if EventAdCreated.IsEngagement() {
		t.Fatal("ad_created is not an engagement event")
	}
	if _, err := ParseEventType("order_paid"); err == nil {
		t.Fatal("expected unknown event type to fail")
	}
}
