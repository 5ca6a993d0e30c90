package graph

import (
	"bytes"
	"os"
	"strconv"
	"unsafe"

	"github.com/rs/zerolog/log"
)

// fastFileLines is a no-allocation line scanner over an *os.File, adapted
// from the teacher's utils/io.go (itself adapted from bufio.Scanner).
type fastFileLines struct {
	buf   []byte
	start int
	end   int
}

func newFastFileLines() *fastFileLines {
	return &fastFileLines{buf: make([]byte, 1<<20)}
}

func (s *fastFileLines) scan(file *os.File) []byte {
	for {
		if s.start > 0 && s.start > len(s.buf)/2 {
			copy(s.buf, s.buf[s.start:s.end])
			s.end -= s.start
			s.start = 0
		}
		if s.end == len(s.buf) {
			grown := make([]byte, len(s.buf)*2)
			copy(grown, s.buf[:s.end])
			s.buf = grown
		}
		n, err := file.Read(s.buf[s.end:])
		s.end += n
		if s.end > s.start {
			if i := bytes.IndexByte(s.buf[s.start:s.end], '\n'); i >= 0 {
				token := s.buf[s.start : s.start+i]
				s.start += i + 1
				return token
			}
		}
		if err != nil {
			if s.end > s.start {
				tok := s.buf[s.start:s.end]
				s.start = s.end
				return tok
			}
			return nil
		}
	}
}

func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}

// fastFields splits byteBuff on ASCII whitespace into fieldBuff, which must
// be pre-sized large enough, without allocating new strings.
func fastFields(fieldBuff []string, byteBuff []byte) int {
	isSpace := func(b byte) bool {
		return b == ' ' || b == '\t' || b == '\n' || b == '\v' || b == '\f' || b == '\r'
	}
	fieldIndex := 0
	i := 0
	for i < len(byteBuff) && isSpace(byteBuff[i]) {
		i++
	}
	fieldStart := i
	for i < len(byteBuff) {
		if !isSpace(byteBuff[i]) {
			i++
			continue
		}
		b := byteBuff[fieldStart:i]
		fieldBuff[fieldIndex] = *(*string)(noescape(unsafe.Pointer(&b)))
		fieldIndex++
		i++
		for i < len(byteBuff) && isSpace(byteBuff[i]) {
			i++
		}
		fieldStart = i
	}
	if fieldStart < len(byteBuff) {
		b := byteBuff[fieldStart:]
		fieldBuff[fieldIndex] = *(*string)(noescape(unsafe.Pointer(&b)))
		fieldIndex++
	}
	return fieldIndex
}

func toUint32(s string) (n uint32) {
	for i := 0; i < len(s); i++ {
		n = n*10 + uint32(s[i]-'0')
	}
	return
}

// LoadEdgeList parses the line-oriented input format from spec.md §6: each
// line is a vertex id followed either by bare neighbour ids (PageRank-style,
// hasWeight=false) or by (neighbour, weight) pairs (SSSP-style,
// hasWeight=true). Any neighbour not yet added is created first with
// sentinelVData, per the "add missing neighbours with sentinel data" rule.
// makeEdgeData receives the parsed weight (0 if hasWeight is false).
func LoadEdgeList[VD any, ED any](path string, hasWeight bool, sentinelVData VD, makeEdgeData func(weight uint32) ED) (*Graph[VD, ED], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g := New[VD, ED]()
	scanner := newFastFileLines()
	fields := make([]string, 256)

	for {
		line := scanner.scan(file)
		if line == nil {
			break
		}
		if len(line) == 0 {
			continue
		}
		n := fastFields(fields, line)
		if n == 0 {
			continue
		}
		src := toUint32(fields[0])
		g.ensureVertex(src, sentinelVData)

		step := 1
		if hasWeight {
			step = 2
		}
		for i := 1; i+step-1 < n; i += step {
			tgt := toUint32(fields[i])
			var weight uint32
			if hasWeight {
				weight = toUint32(fields[i+1])
			}
			g.ensureVertex(tgt, sentinelVData)
			if !g.AddEdge(src, tgt, makeEdgeData(weight)) {
				log.Warn().Msg("skipped edge " + fields[0] + "->" + fields[i])
			}
		}
	}
	return g, nil
}

// WriteVertexProps writes one "<id>\t<data>" line per vertex, per spec.md
// §6's output format, formatting each datum with format.
func WriteVertexProps[VD any, ED any](path string, g *Graph[VD, ED], format func(id uint32, data VD) string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := make([]byte, 0, 64)
	for id := uint32(0); id < uint32(g.NumVertices()); id++ {
		if !g.vertices[id].valid {
			continue
		}
		w = strconv.AppendUint(w[:0], uint64(id), 10)
		w = append(w, '\t')
		w = append(w, format(id, g.vertices[id].data)...)
		w = append(w, '\n')
		if _, err := file.Write(w); err != nil {
			return err
		}
	}
	return nil
}
