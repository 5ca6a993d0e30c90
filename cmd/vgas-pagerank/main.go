package main

import (
	"math"
	"strconv"

	"github.com/asyncgas/vgas/cmd/common"
	"github.com/asyncgas/vgas/engine"
	"github.com/asyncgas/vgas/graph"
	"github.com/asyncgas/vgas/internal/coll"
	"github.com/asyncgas/vgas/internal/mathutils"
	"github.com/rs/zerolog/log"
)

var floatWordCodec = graph.WordCodec[float64]{
	ToWord:   math.Float64bits,
	FromWord: math.Float64frombits,
}

func vlogFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

var edgeWordCodec = graph.WordCodec[struct{}]{
	ToWord:   func(struct{}) uint64 { return 0 },
	FromWord: func(uint64) struct{} { return struct{}{} },
}

func main() {
	flags := common.FlagsToOptions()
	if flags.Graph == "" {
		log.Fatal().Msg("missing -g graph file")
	}

	g, err := graph.LoadEdgeList[float64, struct{}](flags.Graph, false, 1.0, func(uint32) struct{} { return struct{}{} })
	if err != nil {
		log.Fatal().Err(err).Msg("loading graph")
	}
	g.Freeze()

	if flags.Stats {
		s := g.ComputeStats()
		log.Info().Interface("stats", s).Msg("graph loaded")
	}

	mm := graph.NewMainMemory(g, floatWordCodec, edgeWordCodec)
	eng := engine.New[float64, float64, struct{}](g, mm, &program{}, combine, flags.Options)
	eng.SignalAll()
	eng.Start()

	log.Info().
		Uint64("spm_hits", eng.SPMHits()).
		Uint64("spm_misses", eng.SPMMisses()).
		Uint64("spm_failed_loads", eng.NumFailedSPMLoads()).
		Msg("converged")

	ranks := make([]float64, g.NumVertices())
	var total float64
	for i := range ranks {
		ranks[i] = *g.VertexData(uint32(i))
		mathutils.AtomicAddFloat64(&total, ranks[i])
	}
	expectedMass := float64(len(ranks))
	if !mathutils.FloatEquals(total, expectedMass, expectedMass*0.1) {
		log.Warn().
			Float64("total_mass", total).
			Float64("expected_mass", expectedMass).
			Msg("converged rank mass drifted further than sinks alone would explain")
	}

	top := coll.FindTopNInArray(ranks, 10)
	for _, pr := range top {
		log.Info().Uint32("vertex", pr.First).Float64("rank", pr.Second).Msg("top rank")
	}

	if flags.Props != "" {
		err := graph.WriteVertexProps(flags.Props, g, func(id uint32, data float64) string {
			return vlogFloat(data)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("writing vertex properties")
		}
	}
}
