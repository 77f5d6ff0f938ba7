// Package pipeline builds the PDAL pipeline that turns one LAS/LAZ file into
// a COPC file.
//
// A Spec is an ordered list of stages: a reader bound to the input path, an
// optional filters.reprojection stage, and a writers.copc stage bound to the
// output path. Building is pure; running the pipeline is the job of the
// PDAL adapter in internal/infra/pdal.
package pipeline
