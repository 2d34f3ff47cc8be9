package posts

import (
	"strings"
	"testing"
)

func TestPostFormValid(t *testing.T) {
	form := PostForm{Title: "Заголовок", Text: "Очень содержательный текст"}
	if errs := form.Validate(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestPostFormRequiresText(t *testing.T) {
	form := PostForm{Title: "Заголовок"}
	errs := form.Validate()
	if errs["Text"] == "" {
		t.Fatalf("expected error on Text, got %v", errs)
	}
}

func TestPostFormTitleTooLong(t *testing.T) {
	form := PostForm{Title: strings.Repeat("a", 101), Text: "text"}
	errs := form.Validate()
	if errs["Title"] == "" {
		t.Fatalf("expected error on Title, got %v", errs)
	}
}

func TestPostFormGroupMustBeUUID(t *testing.T) {
	form := PostForm{Text: "text", GroupID: "not-a-uuid"}
	errs := form.Validate()
	if errs["GroupID"] == "" {
		t.Fatalf("expected error on GroupID, got %v", errs)
	}
}

func TestCommentFormRequiresText(t *testing.T) {
	if errs := (CommentForm{}).Validate(); errs["Text"] == "" {
		t.Fatalf("expected error on Text, got %v", errs)
	}
	if errs := (CommentForm{Text: "привет"}).Validate(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}
