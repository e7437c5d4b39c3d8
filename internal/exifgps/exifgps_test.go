package exifgps

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-geosorter/internal/geo"
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func ascii(tag uint16, s string) ifdEntry {
	return ifdEntry{tag: tag, typ: 2, count: uint32(len(s) + 1), data: append([]byte(s), 0)}
}

func rational(tag uint16, vals ...uint32) ifdEntry {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(buf[4*i:], v)
	}
	return ifdEntry{tag: tag, typ: 5, count: uint32(len(vals) / 2), data: buf}
}

// buildTIFF returns a big-endian TIFF stream whose IFD0 points to a GPS IFD
// holding the given entries. With no entries the GPS pointer is omitted.
func buildTIFF(gps ...ifdEntry) []byte {
	var b bytes.Buffer
	b.WriteString("MM\x00\x2a")
	binary.Write(&b, binary.BigEndian, uint32(8))

	if len(gps) == 0 {
		binary.Write(&b, binary.BigEndian, uint16(0))
		binary.Write(&b, binary.BigEndian, uint32(0))
		return b.Bytes()
	}

	// IFD0: one entry pointing to the GPS IFD
	gpsOffset := uint32(8 + 2 + 12 + 4)
	binary.Write(&b, binary.BigEndian, uint16(1))
	binary.Write(&b, binary.BigEndian, uint16(0x8825))
	binary.Write(&b, binary.BigEndian, uint16(4))
	binary.Write(&b, binary.BigEndian, uint32(1))
	binary.Write(&b, binary.BigEndian, gpsOffset)
	binary.Write(&b, binary.BigEndian, uint32(0))

	dataOffset := gpsOffset + 2 + 12*uint32(len(gps)) + 4
	var data bytes.Buffer

	binary.Write(&b, binary.BigEndian, uint16(len(gps)))
	for _, e := range gps {
		binary.Write(&b, binary.BigEndian, e.tag)
		binary.Write(&b, binary.BigEndian, e.typ)
		binary.Write(&b, binary.BigEndian, e.count)
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			b.Write(v)
		} else {
			binary.Write(&b, binary.BigEndian, dataOffset+uint32(data.Len()))
			data.Write(e.data)
		}
	}
	binary.Write(&b, binary.BigEndian, uint32(0))
	b.Write(data.Bytes())

	return b.Bytes()
}

func fullGPS() []ifdEntry {
	return []ifdEntry{
		ascii(0x0001, "N"),
		rational(0x0002, 52, 1, 5, 1, 284, 100),
		ascii(0x0003, "W"),
		rational(0x0004, 74, 1, 0, 1, 216, 10),
	}
}

func TestDecode(t *testing.T) {
	e := New(zerolog.Nop())

	tags, err := e.Decode(bytes.NewReader(buildTIFF(fullGPS()...)))
	require.NoError(t, err)

	assert.Equal(t, geo.Tags{
		geo.TagLatitude:     {Rationals: []geo.Rational{{Num: 52, Den: 1}, {Num: 5, Den: 1}, {Num: 284, Den: 100}}},
		geo.TagLatitudeRef:  {Ref: "N"},
		geo.TagLongitude:    {Rationals: []geo.Rational{{Num: 74, Den: 1}, {Num: 0, Den: 1}, {Num: 216, Den: 10}}},
		geo.TagLongitudeRef: {Ref: "W"},
	}, tags)

	c, err := geo.CoordinatesFromTags(tags)
	require.NoError(t, err)
	assert.InDelta(t, 52.0841222222, c.Lat, 1e-10)
	assert.InDelta(t, -74.0226666667, c.Lon, 1e-10)
}

func TestDecodeTextualDMS(t *testing.T) {
	e := New(zerolog.Nop())

	tags, err := e.Decode(bytes.NewReader(buildTIFF(
		ascii(0x0001, "S"),
		ascii(0x0002, "33/1 52/1 1080/100"),
		ascii(0x0003, "E"),
		ascii(0x0004, "(151, 1) (12, 1) (3600, 100)"),
	)))
	require.NoError(t, err)

	c, err := geo.CoordinatesFromTags(tags)
	require.NoError(t, err)
	assert.InDelta(t, -33.8696666667, c.Lat, 1e-10)
	assert.InDelta(t, 151.21, c.Lon, 1e-10)
}

func TestDecodeNoGPS(t *testing.T) {
	e := New(zerolog.Nop())

	tags, err := e.Decode(bytes.NewReader(buildTIFF()))
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDecodeNoExif(t *testing.T) {
	e := New(zerolog.Nop())

	tags, err := e.Decode(bytes.NewReader([]byte{0xff, 0xd8, 0xff, 0xd9}))
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDecodePartialGPS(t *testing.T) {
	e := New(zerolog.Nop())

	tags, err := e.Decode(bytes.NewReader(buildTIFF(
		ascii(0x0001, "N"),
		rational(0x0002, 52, 1, 5, 1, 284, 100),
	)))
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	_, err = geo.CoordinatesFromTags(tags)
	assert.ErrorIs(t, err, geo.ErrIncompleteTags)
}

func TestDecodeMalformedText(t *testing.T) {
	e := New(zerolog.Nop())

	_, err := e.Decode(bytes.NewReader(buildTIFF(
		ascii(0x0001, "N"),
		ascii(0x0002, "fifty-two"),
	)))
	assert.ErrorIs(t, err, geo.ErrMalformedDMS)
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_0001.jpg")
	require.NoError(t, os.WriteFile(path, buildTIFF(fullGPS()...), 0o644))

	tags, err := New(zerolog.Nop()).Extract(path)
	require.NoError(t, err)
	assert.Len(t, tags, 4)

	_, err = New(zerolog.Nop()).Extract(filepath.Join(dir, "missing.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
