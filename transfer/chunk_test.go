package transfer

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	iolib "httpc/lib/io"
	"httpc/wire"
)

type ChunkedReaderTestSuite struct {
	suite.Suite
}

func TestChunkedReaderTestSuite(t *testing.T) {
	suite.Run(t, new(ChunkedReaderTestSuite))
}

func (s *ChunkedReaderTestSuite) TestRead() {
	input := []byte("" +
		"5;ext=foo\r\n" +
		"ABCDE\r\n" +
		"a\r\n" +
		"FGHIJKLNMO\r\n" +
		"0\r\n" + // last chunk
		"Hello: World\r\n" + // trailer
		"\r\n", // empty trailer (last trailer)
	)

	trailers := make([]wire.Field, 0)
	cr := NewChunkedCoder().NewReader(bytes.NewReader(input)).(*ChunkedReader)
	cr.SetOnTrailerReceived(func(f []wire.Field) { trailers = f })

	buf := make([]byte, 2)
	// First read reads only AB
	n, err := cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(len(buf), n)
	s.Equal([]byte("AB"), buf)

	buf = make([]byte, 10)
	// Second read reads all the data in first chunk.
	n, err = cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(3, n)
	s.Equal([]byte("CDE"), buf[:n])

	// Third read reads all the data in second chunk.
	n, err = cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(len(buf), n)
	s.Equal([]byte("FGHIJKLNMO"), buf)

	// Fourth read reads last chunk.
	n, err = cr.Read(buf)
	s.Require().ErrorIs(err, io.EOF)
	s.Equal(0, n)

	s.Len(trailers, 1)
	expected := wire.Field{Name: []byte("Hello"), Value: []byte("World")}
	s.Equal(expected, trailers[0])
}

func (s *ChunkedReaderTestSuite) TestReadWikipediaVector() {
	input := []byte("" +
		"4\r\n" +
		"Wiki\r\n" +
		"5\r\n" +
		"pedia\r\n" +
		"E\r\n" +
		" in\r\n\r\nchunks.\r\n" +
		"0\r\n" +
		"\r\n",
	)

	cr := NewChunkedReader(bytes.NewReader(input))
	b, err := io.ReadAll(cr)
	s.Require().NoError(err)
	s.Equal("Wikipedia in\r\n\r\nchunks.", string(b))
}

func (s *ChunkedReaderTestSuite) TestReadMalformed() {
	testcases := []struct {
		desc  string
		input []byte
	}{
		{
			desc:  "size is not hex",
			input: []byte("XYZ\r\nABCDE\r\n0\r\n\r\n"),
		},
		{
			desc:  "missing data delimiter",
			input: []byte("5\r\nABCDEFG\r\n0\r\n\r\n"),
		},
		{
			desc:  "truncated mid chunk",
			input: []byte("5\r\nAB"),
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			cr := NewChunkedReader(bytes.NewReader(tc.input))
			_, err := io.ReadAll(cr)
			s.Error(err)
		})
	}
}

func (s *ChunkedReaderTestSuite) TestDecodeChunk() {
	testcases := []struct {
		desc     string
		input    []byte
		expected Chunk
		wantErr  bool
	}{
		{
			desc:  "example chunk",
			input: []byte("5;ext=foo\r\nABCDE\r\n"),
			expected: Chunk{
				Size:       5,
				Extensions: [][2]string{{"ext", "foo"}},
			},
		},
		{
			desc:  "quoted extension value",
			input: []byte("5;ext=\"foo bar\"\r\nABCDE\r\n"),
			expected: Chunk{
				Size:       5,
				Extensions: [][2]string{{"ext", "foo bar"}},
			},
		},
		{
			desc:     "no extensions",
			input:    []byte("5\r\nABCDE\r\n"),
			expected: Chunk{Size: 5, Extensions: [][2]string{}},
		},
		{
			desc:    "invalid size",
			input:   []byte("hey;ext=foo\r\nABCDE\r\n"),
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			cr := NewChunkedReader(bytes.NewReader(tc.input))
			err := cr.decodeChunk()
			if tc.wantErr {
				s.Error(err)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.expected.Size, cr.chunk.Size)
			s.Equal(tc.expected.Extensions, cr.chunk.Extensions)
		})
	}
}

type ChunkedWriterTestSuite struct {
	suite.Suite
	buf *bytes.Buffer
	cw  *ChunkedWriter
}

func TestChunkedWriterTestSuite(t *testing.T) {
	suite.Run(t, new(ChunkedWriterTestSuite))
}

func (s *ChunkedWriterTestSuite) SetupTest() {
	s.buf = bytes.NewBuffer(nil)
	s.cw = NewChunkedCoder().NewWriter(iolib.NopWriteCloser(s.buf)).(*ChunkedWriter)
}

func (s *ChunkedWriterTestSuite) TestWrite() {
	n, err := s.cw.Write([]byte("ABCDE"))
	s.Require().NoError(err)
	s.Equal(5, n)

	s.Equal("5\r\nABCDE\r\n", s.buf.String())
}

func (s *ChunkedWriterTestSuite) TestWriteEmpty() {
	n, err := s.cw.Write(nil)
	s.Require().NoError(err)
	s.Equal(0, n)
	s.Empty(s.buf.Bytes())
}

func (s *ChunkedWriterTestSuite) TestWriteExtensions() {
	s.cw.SetExtensions([][2]string{{"ext", "foo"}})

	_, err := s.cw.Write([]byte("AB"))
	s.Require().NoError(err)
	s.Equal("2;ext=foo\r\nAB\r\n", s.buf.String())

	// Extensions only apply to the next chunk.
	_, err = s.cw.Write([]byte("CD"))
	s.Require().NoError(err)
	s.Equal("2;ext=foo\r\nAB\r\n2\r\nCD\r\n", s.buf.String())
}

func (s *ChunkedWriterTestSuite) TestClose() {
	_, err := s.cw.Write([]byte("AB"))
	s.Require().NoError(err)

	s.Require().NoError(s.cw.Close())
	s.Equal("2\r\nAB\r\n0\r\n\r\n", s.buf.String())
}

func (s *ChunkedWriterTestSuite) TestCloseWithTrailers() {
	s.cw.SetSendTrailers(func() []wire.Field {
		return []wire.Field{{Name: []byte("Hello"), Value: []byte("World")}}
	})

	s.Require().NoError(s.cw.Close())
	s.Equal("0\r\nHello: World\r\n\r\n", s.buf.String())
}

func TestChunkedRoundTrip(t *testing.T) {
	payload := []byte("The quick brown fox jumps over the lazy dog")

	buf := bytes.NewBuffer(nil)
	cw := NewChunkedWriter(buf)

	for _, piece := range [][]byte{payload[:10], payload[10:25], payload[25:]} {
		_, err := cw.Write(piece)
		require.NoError(t, err)
	}
	require.NoError(t, cw.Close())

	decoded, err := io.ReadAll(NewChunkedReader(buf))
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}
