package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qs3c/everwith_go_server/config"
)

func TestNewProcessor(t *testing.T) {
	cfg := &config.Config{}

	processor := NewProcessor(nil, nil, nil, nil, cfg)

	assert.NotNil(t, processor)
	assert.Equal(t, cfg, processor.cfg)
}

func TestResultExt(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"jpg", "https://gen.example.com/out/abc.jpg", ".jpg"},
		{"png", "https://gen.example.com/out/abc.png", ".png"},
		{"webp", "https://gen.example.com/out/abc.webp", ".webp"},
		{"uppercase", "https://gen.example.com/out/ABC.PNG", ".png"},
		{"query string", "https://gen.example.com/out/abc.png?token=xyz", ".png"},
		{"no extension", "https://gen.example.com/out/abc", ".jpg"},
		{"unknown extension", "https://gen.example.com/out/abc.tiff", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultExt(tt.url))
		})
	}
}
