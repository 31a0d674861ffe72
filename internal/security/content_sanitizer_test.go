package security

import "testing"

func TestSanitize_StripsAllTags(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "山田太郎", "山田太郎"},
		{"scriptタグを除去", `<script>alert("xss")</script>山田`, "山田"},
		{"imgタグのイベント属性ごと除去", `<img src=x onerror=alert(1)>花子`, "花子"},
		{"装飾タグも除去", "<b>強調</b>テキスト", "強調テキスト"},
		{"aタグを除去してテキストは残す", `<a href="https://example.com">リンク</a>`, "リンク"},
		{"前後の空白を除去", "  太郎  ", "太郎"},
		{"空文字列は空文字列", "", ""},
		{"タグのみの入力は空になる", "<div></div>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	inputs := []string{"山田太郎", "<b>text</b>", "  spaced  "}
	for _, input := range inputs {
		once := s.Sanitize(input)
		twice := s.Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize is not idempotent for %q: first=%q, second=%q", input, once, twice)
		}
	}
}
