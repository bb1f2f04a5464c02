package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"
)

type Encoder interface {
	Encode(v interface{}) error
}

type reportFormat int

const (
	formatText reportFormat = iota
	formatCsv
	formatJson
)

// textEncoder writes one match per line as line:col-line:col followed by the
// matched text. The pattern is included when more than one was given.
type textEncoder struct {
	w           io.Writer
	withPattern bool
}

func (t textEncoder) Encode(v interface{}) error {
	r, ok := v.(Result)
	if !ok {
		return fmt.Errorf("can't report a %T", v)
	}
	var err error
	if t.withPattern {
		_, err = fmt.Fprintf(t.w, "%s\t%d:%d-%d:%d\t%q\n", r.Pattern, r.Line, r.Col, r.EndLine, r.EndCol, r.Text)
	} else {
		_, err = fmt.Fprintf(t.w, "%d:%d-%d:%d\t%q\n", r.Line, r.Col, r.EndLine, r.EndCol, r.Text)
	}
	return err
}

func getEncoder(w io.Writer, format reportFormat, patterns int) (enc Encoder, flush func() error) {
	switch format {
	case formatCsv:
		cw := csv.NewWriter(w)
		enc = csvutil.NewEncoder(cw)
		flush = func() error {
			cw.Flush()
			return cw.Error()
		}
		return
	case formatJson:
		enc = json.NewEncoder(w)
		flush = func() error { return nil }
		return
	}

	enc = textEncoder{w: w, withPattern: patterns > 1}
	flush = func() error { return nil }
	return
}
