package capture

import (
	"bytes"
	"path/filepath"
	"strings"
)

const (
	SuffixWAV  = ".wav"
	SuffixMP3  = ".mp3"
	SuffixWebM = ".webm"
	SuffixOgg  = ".ogg"
)

// sniff определяет контейнер по первым байтам.
func sniff(data []byte) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return SuffixWAV
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return SuffixMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG frame sync
		return SuffixMP3
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return SuffixWebM
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		return SuffixOgg
	}
	return ""
}

func suffixFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch ct {
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return SuffixWAV
	case "audio/mpeg", "audio/mp3":
		return SuffixMP3
	case "audio/webm", "video/webm":
		return SuffixWebM
	case "audio/ogg":
		return SuffixOgg
	}
	return ""
}

// uploadSuffix — загрузка принимает только wav и mp3, и расширение имени
// должно совпасть с содержимым.
func uploadSuffix(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != SuffixWAV && ext != SuffixMP3 {
		return "", ErrUnsupportedFormat
	}
	if got := sniff(data); got != ext {
		return "", ErrUnsupportedFormat
	}
	return ext, nil
}

// recordingSuffix — рекордер браузера может отдать wav, webm или ogg.
func recordingSuffix(contentType string, data []byte) string {
	if s := sniff(data); s != "" {
		return s
	}
	if s := suffixFromContentType(contentType); s != "" {
		return s
	}
	return SuffixWAV
}
