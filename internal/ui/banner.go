// Package ui renders the clinic screens to a terminal: a header, the
// transient banner left by the last action, and either a loading notice, an
// empty notice or a table.
package ui

import (
	"fmt"
	"io"
)

type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerSuccess
	BannerError
)

// Banner is the one-line message an action leaves behind.
type Banner struct {
	Kind BannerKind
	Text string
}

func Success(text string) Banner {
	return Banner{Kind: BannerSuccess, Text: text}
}

func Failure(text string) Banner {
	return Banner{Kind: BannerError, Text: text}
}

func (b Banner) IsZero() bool {
	return b.Kind == BannerNone
}

func (b Banner) String() string {
	switch b.Kind {
	case BannerSuccess:
		return "[ok] " + b.Text
	case BannerError:
		return "[error] " + b.Text
	}
	return ""
}

func (b Banner) write(w io.Writer) error {
	if b.IsZero() {
		return nil
	}
	_, err := fmt.Fprintln(w, b.String())
	return err
}
