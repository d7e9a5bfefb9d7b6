// ABOUTME: Channel selection variants for connecting to audio devices
// ABOUTME: Supports single channel, contiguous range, and explicit list forms
package audio

import "sort"

// SelectionKind discriminates the channel selection variants.
type SelectionKind uint8

const (
	// SelectionMono selects a single channel index.
	SelectionMono SelectionKind = iota + 1
	// SelectionRange selects the half-open index range [Start, End).
	SelectionRange
	// SelectionList selects an explicit list of channel indices.
	SelectionList
)

// ChannelSelection describes which channels of a device to use.
// Construct values with Mono, Range, or List.
type ChannelSelection struct {
	Kind SelectionKind

	// Mono
	Channel int

	// Range, half-open [Start, End)
	Start int
	End   int

	// List
	Indices []int
}

// Mono selects a single channel.
func Mono(channel int) ChannelSelection {
	return ChannelSelection{Kind: SelectionMono, Channel: channel}
}

// Range selects the contiguous half-open channel range [start, end).
func Range(start, end int) ChannelSelection {
	return ChannelSelection{Kind: SelectionRange, Start: start, End: end}
}

// List selects an explicit list of channel indices.
func List(indices ...int) ChannelSelection {
	return ChannelSelection{Kind: SelectionList, Indices: indices}
}

// Channels builds a sorted array of all unique selected channel indices.
func (s ChannelSelection) Channels() []int {
	switch s.Kind {
	case SelectionMono:
		return []int{s.Channel}
	case SelectionRange:
		if s.End <= s.Start {
			return nil
		}
		chans := make([]int, 0, s.End-s.Start)
		for ch := s.Start; ch < s.End; ch++ {
			chans = append(chans, ch)
		}
		return chans
	case SelectionList:
		seen := make(map[int]struct{}, len(s.Indices))
		chans := make([]int, 0, len(s.Indices))
		for _, ch := range s.Indices {
			if _, ok := seen[ch]; ok {
				continue
			}
			seen[ch] = struct{}{}
			chans = append(chans, ch)
		}
		sort.Ints(chans)
		return chans
	}

	return nil
}

// Count reports the number of unique channels selected.
func (s ChannelSelection) Count() int {
	switch s.Kind {
	case SelectionMono:
		return 1
	case SelectionRange:
		if s.End <= s.Start {
			return 0
		}
		return s.End - s.Start
	case SelectionList:
		return len(s.Channels())
	}

	return 0
}
