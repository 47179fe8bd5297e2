package ps2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportParser(t *testing.T) {
	testCases := []struct {
		name    string
		wheel   bool
		in      []byte
		expect  []Report
		skipped uint32
	}{
		{
			name:   "standard",
			in:     []byte{0x09, 0x05, 0x02},
			expect: []Report{{Buttons: ButtonLeft, DX: 5, DY: 2}},
		},
		{
			name: "negative",
			in:   []byte{0x38, 0xf6, 0xff},
			expect: []Report{{DX: -10, DY: -1}},
		},
		{
			name:   "full range",
			in:     []byte{0xd8, 0x00, 0xff, 0x08, 0xff, 0x00},
			expect: []Report{{DX: -256, DY: 255, XOverflow: true, YOverflow: true}, {DX: 255}},
		},
		{
			name:   "wheel",
			wheel:  true,
			in:     []byte{0x0c, 0x03, 0x00, 0xff, 0x0a, 0x01, 0x01, 0x02},
			expect: []Report{{Buttons: ButtonMiddle, DX: 3, Wheel: -1}, {Buttons: ButtonRight, DX: 1, DY: 1, Wheel: 2}},
		},
		{
			name:    "resync",
			in:      []byte{0x01, 0x02, 0x0f, 0x00, 0x00},
			expect:  []Report{{Buttons: ButtonsAll}},
			skipped: 2,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &ReportParser{Wheel: tc.wheel}
			var reports []Report
			for _, b := range tc.in {
				if r, ok := p.Parse(b); ok {
					reports = append(reports, r)
				}
			}
			require.Equal(t, tc.expect, reports)
			require.Equal(t, tc.skipped, p.Skipped())
			require.False(t, p.Partial())
		})
	}
}

func TestReportBytes(t *testing.T) {
	r := Report{Buttons: ButtonLeft | ButtonMiddle, DX: -3, DY: 7, Wheel: -2}
	require.Equal(t, []byte{0x1d, 0xfd, 0x07}, r.Bytes(false))
	b := r.Bytes(true)
	require.Equal(t, []byte{0x1d, 0xfd, 0x07, 0xfe}, b)

	p := &ReportParser{Wheel: true}
	var got Report
	for _, v := range b {
		got, _ = p.Parse(v)
	}
	require.Equal(t, r, got)
}

func TestParserReset(t *testing.T) {
	p := &ReportParser{}
	_, ok := p.Parse(0x08)
	require.False(t, ok)
	require.True(t, p.Partial())
	p.Reset()
	require.False(t, p.Partial())
	r, ok := p.Parse(0x08)
	require.False(t, ok)
	p.Parse(0x01)
	r, ok = p.Parse(0x02)
	require.True(t, ok)
	require.Equal(t, Report{DX: 1, DY: 2}, r)
}

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		name   string
		in     [3]byte
		expect Status
	}{
		{
			name:   "defaults",
			in:     [3]byte{0x00, 0x02, 0x64},
			expect: Status{Resolution: 2, SampleRate: 100},
		},
		{
			name:   "streaming",
			in:     [3]byte{0x20, 0x03, 0xc8},
			expect: Status{Reporting: true, Resolution: 3, SampleRate: 200},
		},
		{
			name: "everything",
			in:   [3]byte{0x77, 0x00, 0x0a},
			expect: Status{
				Buttons:    ButtonsAll,
				Scaling:    true,
				Reporting:  true,
				Remote:     true,
				SampleRate: 10,
			},
		},
		{
			name:   "buttons",
			in:     [3]byte{0x05, 0x01, 0x28},
			expect: Status{Buttons: ButtonLeft | ButtonRight, Resolution: 1, SampleRate: 40},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := ParseStatus(tc.in)
			require.Equal(t, tc.expect, s)
			require.Equal(t, tc.in, s.Bytes())
		})
	}
}
