package main

import (
	"strconv"

	"github.com/asyncgas/vgas/cmd/common"
	"github.com/asyncgas/vgas/engine"
	"github.com/asyncgas/vgas/graph"
	"github.com/rs/zerolog/log"
)

var intWordCodec = graph.WordCodec[int64]{
	ToWord:   func(v int64) uint64 { return uint64(v) },
	FromWord: func(w uint64) int64 { return int64(w) },
}

func main() {
	flags := common.FlagsToOptions()

	var g *graph.Graph[int64, int64]
	var err error
	if flags.Graph != "" {
		g, err = graph.LoadEdgeList[int64, int64](flags.Graph, true, -1, func(w uint32) int64 { return int64(w) })
		if err != nil {
			log.Fatal().Err(err).Msg("loading graph")
		}
	} else {
		log.Info().Msg("no -g given; generating a random weighted digraph for conformance testing")
		g = randomGraph(200, 4, 42)
	}
	*g.VertexData(0) = 0 // source, per SSSP.cpp's cur_vid == 0 ? 0 : -1
	g.Freeze()

	if flags.Stats {
		s := g.ComputeStats()
		log.Info().Interface("stats", s).Msg("graph loaded")
	}

	mm := graph.NewMainMemory(g, intWordCodec, intWordCodec)
	eng := engine.New[minGather, int64, int64](g, mm, &program{}, combine, flags.Options)
	eng.SignalAll()
	eng.Start()

	log.Info().
		Uint64("spm_hits", eng.SPMHits()).
		Uint64("spm_misses", eng.SPMMisses()).
		Uint64("spm_failed_loads", eng.NumFailedSPMLoads()).
		Msg("converged")

	if flags.Graph == "" {
		compareToOracle(g)
	}

	if flags.Props != "" {
		err := graph.WriteVertexProps(flags.Props, g, func(id uint32, data int64) string {
			return strconv.FormatInt(data, 10)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("writing vertex properties")
		}
	}
}
