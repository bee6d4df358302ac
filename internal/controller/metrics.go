package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// placementsTotal counts placed nodes by kind
	placementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netcanvas_placements_total",
		Help: "Total nodes placed by kind",
	}, []string{"kind"})

	// placementRejectionsTotal counts placements refused for being too close
	placementRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netcanvas_placement_rejections_total",
		Help: "Total placements rejected by the minimum separation rule",
	})

	// edgesAddedTotal counts connections completed in connect mode
	edgesAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netcanvas_edges_added_total",
		Help: "Total connections added",
	})

	// linesDrawnTotal counts individual line draw instructions
	linesDrawnTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netcanvas_lines_drawn_total",
		Help: "Total connection lines drawn, including redraws",
	})

	// loadsTotal counts document loads by result
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netcanvas_loads_total",
		Help: "Total topology loads by result",
	}, []string{"result"})

	// noticesTotal counts user-visible notices by reason
	noticesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netcanvas_notices_total",
		Help: "Total notices shown to the user by reason",
	}, []string{"reason"})
)
