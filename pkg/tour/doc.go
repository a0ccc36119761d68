// Package tour defines the in-memory model of a 360° panorama tour.
//
// # Overview
//
// A tour is a set of [Scene] values, each one a navigable panorama, linked by
// [Hotspot] values declared on the scene that hosts them. Navigation hotspots
// point at another scene (or the same scene) and become directed edges in the
// tour graph; informational hotspots carry text only.
//
// The model is produced by the loader in pkg/io and is immutable for the
// duration of one analysis run. Problems found while decoding individual
// records are kept alongside the model as [ParseError] values instead of
// aborting the load:
//
//	t, err := io.ImportTour("tour-config.json")
//	if err != nil {
//	    // the document itself could not be read or decoded
//	}
//	for _, pe := range t.ParseErrors {
//	    fmt.Println(pe)
//	}
//
// # Floors
//
// Floor assignment is an explicit integer field. A scene without one has an
// unspecified [Floor]; [Settings.DefaultFloor] may supply a fallback, see
// [Tour.EffectiveFloor].
package tour
