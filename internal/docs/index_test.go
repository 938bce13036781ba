package docs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverClasses(t *testing.T) {
	t.Parallel()

	src := &DirSource{Root: "testdata"}

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{
			name:   "no prefix",
			prefix: "",
			want: []string{
				"com/example/ui/Color.html",
				"com/example/legacy/Legacy.html",
				"com/example/ui/Broken.html",
				"com/example/ui/Widget.html",
			},
		},
		{
			name:   "prefix",
			prefix: "com/example/ui/",
			want: []string{
				"com/example/ui/Color.html",
				"com/example/ui/Broken.html",
				"com/example/ui/Widget.html",
			},
		},
		{
			name:   "nothing matches",
			prefix: "zombie/",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			refs, err := DiscoverClasses(context.Background(), src, "allclasses-index.html", tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, refs)
		})
	}
}

func TestDiscoverClassesMissingIndex(t *testing.T) {
	t.Parallel()

	_, err := DiscoverClasses(context.Background(), &DirSource{Root: "testdata"}, "nope.html", "")
	assert.Error(t, err)
}

func TestClassRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{"a/B.html", "a/B.html", true},
		{"a/B.html#method()", "a/B.html", true},
		{"a/package-summary.html", "", false},
		{"a/class-use/B.html", "", false},
		{"index.html", "", false},
		{"https://example.com/a/B.html", "", false},
		{"//example.com/a/B.html", "", false},
		{"/a/B.html", "", false},
		{"../a/B.html", "", false},
		{"a/B.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			t.Parallel()
			got, ok := classRef(tt.href, "")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
