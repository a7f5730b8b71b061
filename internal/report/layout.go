package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"auditionsync/internal/grid"
	"auditionsync/internal/records"
)

// UnspecifiedInstrument labels records without an instrument answer.
const UnspecifiedInstrument = "Unspecified"

type section[T any] struct {
	noun       string
	headers    []string
	typeOf     func(T) string
	instrument func(T) string
	at         func(T) time.Time
	row        func(T) []string
}

var packetSection = section[records.Packet]{
	noun:       "downloads",
	headers:    records.PacketHeaders,
	typeOf:     func(p records.Packet) string { return p.Type },
	instrument: func(p records.Packet) string { return p.Instrument },
	at:         func(p records.Packet) time.Time { return p.DownloadedAt },
	row:        records.Packet.Row,
}

var registrationSection = section[records.Registration]{
	noun:       "registrations",
	headers:    records.RegistrationHeaders,
	typeOf:     func(r records.Registration) string { return r.Type },
	instrument: func(r records.Registration) string { return r.Instrument },
	at:         func(r records.Registration) time.Time { return r.RegisteredAt },
	row:        records.Registration.Row,
}

// PacketGrid lays out packets for the packets tab.
func PacketGrid(packets []records.Packet) *grid.Builder {
	return layout(packets, packetSection)
}

// RegistrationGrid lays out registrations for the registrations tab.
func RegistrationGrid(registrations []records.Registration) *grid.Builder {
	return layout(registrations, registrationSection)
}

type group[T any] struct {
	key   string
	items []T
}

func groupBy[T any](items []T, key func(T) string) []group[T] {
	index := map[string]int{}
	var groups []group[T]
	for _, item := range items {
		k := key(item)
		pos, ok := index[k]
		if !ok {
			pos = len(groups)
			index[k] = pos
			groups = append(groups, group[T]{key: k})
		}
		groups[pos].items = append(groups[pos].items, item)
	}
	slices.SortStableFunc(groups, func(a, b group[T]) int {
		return cmp.Compare(strings.ToLower(a.key), strings.ToLower(b.key))
	})
	return groups
}

func layout[T any](items []T, s section[T]) *grid.Builder {
	b := &grid.Builder{}
	types := groupBy(items, s.typeOf)
	for ti, typeGroup := range types {
		if ti > 0 {
			b.Blank()
		}
		b.Header(fmt.Sprintf("%s (%d %s)", typeGroup.key, len(typeGroup.items), s.noun))
		b.Subheader(s.headers...)

		instruments := groupBy(typeGroup.items, func(item T) string {
			if label := strings.TrimSpace(s.instrument(item)); label != "" {
				return label
			}
			return UnspecifiedInstrument
		})
		for ii, instrumentGroup := range instruments {
			if ii > 0 {
				b.Blank()
			}
			b.Instrument(instrumentGroup.key)
			rows := slices.Clone(instrumentGroup.items)
			slices.SortStableFunc(rows, func(a, c T) int {
				return s.at(a).Compare(s.at(c))
			})
			for _, item := range rows {
				b.Data(s.row(item))
			}
		}
	}
	return b
}
