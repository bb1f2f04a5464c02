// Package debug keeps a bounded in-memory log per category.
package debug

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jeffwilliams/ctxpat/internal/circ"
)

type DebugLog struct {
	entries map[string]*circ.Circ[*entry]
	max     int
	seq     uint64
	lock    sync.Mutex
}

type entry struct {
	when     time.Time
	seq      uint64
	category string
	message  string
}

// New makes a log that keeps the last maxEntries entries of each category.
func New(maxEntries int) *DebugLog {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &DebugLog{max: maxEntries}
}

func (l *DebugLog) Addf(category, message string, args ...interface{}) {
	l.Add(category, fmt.Sprintf(message, args...))
}

func (l *DebugLog) Add(category, message string) {
	l.lock.Lock()
	l.seq++
	l.ringForCategory(category).Add(&entry{time.Now(), l.seq, category, message})
	l.lock.Unlock()
}

func (l *DebugLog) ringForCategory(category string) *circ.Circ[*entry] {
	if l.entries == nil {
		l.entries = make(map[string]*circ.Circ[*entry])
	}
	c, ok := l.entries[category]
	if !ok {
		r := circ.New[*entry](l.max)
		c = &r
		l.entries[category] = c
	}
	return c
}

// Categories returns the categories that have entries, sorted.
func (l *DebugLog) Categories() []string {
	l.lock.Lock()
	defer l.lock.Unlock()

	c := make([]string, 0, len(l.entries))
	for k := range l.entries {
		c = append(c, k)
	}
	sort.Strings(c)
	return c
}

// String merges the entries of the given categories, or of all categories if
// none are given, into one log in the order they were added. The oldest
// retained entry of each category is flagged <first>:
//
//	2022-05-21T12:43:12.123 <category><first> Message
func (l *DebugLog) String(categories ...string) string {
	l.lock.Lock()
	defer l.lock.Unlock()

	if len(categories) == 0 {
		for k := range l.entries {
			categories = append(categories, k)
		}
	}

	var all []*entry
	first := make(map[*entry]bool)
	for _, cat := range categories {
		c, ok := l.entries[cat]
		if !ok || c.Empty() {
			continue
		}
		s := c.Slice()
		first[s[0]] = true
		all = append(all, s...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].seq < all[j].seq
	})

	var buf bytes.Buffer
	for _, e := range all {
		s := format(e, first[e])
		buf.WriteString(s)
		if !strings.HasSuffix(s, "\n") {
			buf.WriteRune('\n')
		}
	}
	return buf.String()
}

func format(e *entry, first bool) string {
	f := ""
	if first {
		f = "<first>"
	}
	return fmt.Sprintf("%s <%s>%s %s", e.when.Format("2006-01-02T15:04:05.000"), e.category, f, e.message)
}
