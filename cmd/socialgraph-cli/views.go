package main

import (
	"strconv"
	"strings"

	"github.com/campusgraph/socialgraph/client"
	"github.com/campusgraph/socialgraph/internal/models"
)

type metricsView models.NetworkMetrics

func (v metricsView) table() ([]string, [][]string) {
	return []string{"METRIC", "VALUE"}, [][]string{
		{"nodes", strconv.Itoa(v.NodeCount)},
		{"edges", strconv.Itoa(v.EdgeCount)},
		{"density", ftoa(v.Density)},
		{"average_degree", ftoa(v.AverageDegree)},
		{"average_path_length", ftoa(v.AveragePathLength)},
		{"clustering_coefficient", ftoa(v.ClusteringCoefficient)},
		{"components", strconv.Itoa(v.ComponentCount)},
	}
}

type communitiesView []models.Community

func (v communitiesView) table() ([]string, [][]string) {
	rows := make([][]string, 0, len(v))
	for _, c := range v {
		rows = append(rows, []string{strconv.Itoa(c.ID), strconv.Itoa(c.Size), ftoa(c.Density), strings.Join(c.Members, ",")})
	}
	return []string{"ID", "SIZE", "DENSITY", "MEMBERS"}, rows
}

type influentialView []models.InfluentialNode

func (v influentialView) table() ([]string, [][]string) {
	rows := make([][]string, 0, len(v))
	for _, n := range v {
		rows = append(rows, []string{n.NodeID, ftoa(n.Score), strconv.Itoa(n.Followers)})
	}
	return []string{"NODE", "SCORE", "FOLLOWERS"}, rows
}

type traversalView models.TraversalResult

func (v traversalView) table() ([]string, [][]string) {
	rows := make([][]string, 0, len(v.Nodes))
	for _, n := range v.Nodes {
		rows = append(rows, []string{n.NodeID, strconv.Itoa(n.Distance), ftoa(n.Weight), ftoa(n.Relevance), strings.Join(n.Path, ">")})
	}
	return []string{"NODE", "DISTANCE", "WEIGHT", "RELEVANCE", "PATH"}, rows
}

type remoteNodesView []client.TraversedNode

func (v remoteNodesView) table() ([]string, [][]string) {
	rows := make([][]string, 0, len(v))
	for _, n := range v {
		rows = append(rows, []string{n.NodeID, strconv.Itoa(n.Distance), ftoa(n.Weight), ftoa(n.Relevance), strings.Join(n.Path, ">")})
	}
	return []string{"NODE", "DISTANCE", "WEIGHT", "RELEVANCE", "PATH"}, rows
}

func traversedIDs(nodes []models.TraversedNode) []string {
	ids := make([]string, len(nodes))
	for i := range nodes {
		ids[i] = nodes[i].NodeID
	}
	return ids
}

func remoteIDs(nodes []client.TraversedNode) []string {
	ids := make([]string, len(nodes))
	for i := range nodes {
		ids[i] = nodes[i].NodeID
	}
	return ids
}
