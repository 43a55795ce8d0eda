package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		in   string
		want string
	}{
		{"Clean", "Congrats John!", "Congrats John!"},
		{"NullBytes", "abc\x00def", "abcdef"},
		{"ControlChars", "a\x01\x02b\x1Fc", "abc"},
		{"KeepsNewlines", "line one\nline two", "line one\nline two"},
		{"ReplacementChar", "bad�text", "badtext"},
		{"PrivateUseArea", "logohere", "logohere"},
		{"CollapsesSpaceRuns", "too    many \t spaces", "too many spaces"},
		{"Trims", "  padded  ", "padded"},
		{"Emoji", "🥇 winner", "🥇 winner"},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SanitizeText(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizeText(got))
		})
	}
}

func TestSanitizeJSON(t *testing.T) {
	t.Parallel()

	in := map[string]interface{}{
		"content": "text\x00here",
		"nested": map[string]interface{}{
			"author\x01": "Jo\x02hn",
		},
		"items": []interface{}{"a\x00", 42.0, true, nil},
		"count": 3.0,
	}
	got := SanitizeJSON(in).(map[string]interface{})

	assert.Equal(t, "texthere", got["content"])
	nested := got["nested"].(map[string]interface{})
	assert.Equal(t, "John", nested["author"])
	items := got["items"].([]interface{})
	assert.Equal(t, "a", items[0])
	assert.Equal(t, 42.0, items[1])
	assert.Equal(t, true, items[2])
	assert.Nil(t, items[3])
	assert.Equal(t, 3.0, got["count"])
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		in   string
		want string
	}{
		{"Clean", "photo_1.jpg", "photo_1.jpg"},
		{"Spaces", "my photo.jpg", "my_photo.jpg"},
		{"NonASCII", "фото.png", "____.png"},
		{"Symbols", "a&b(c).gif", "a_b_c_.gif"},
		{"KeepsDotsDashes", "img-01.final.webp", "img-01.final.webp"},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
