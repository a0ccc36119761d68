// Package io loads tour configuration documents and exchanges graph views.
//
// # Overview
//
// A tour document is the configuration the viewer and the authoring tool
// share. This package decodes it into a [tour.Tour], accepting JSON or YAML:
//
//	{
//	  "settings": {"startSceneId": "lobby", "defaultFloor": 1, "transitionDuration": 1000},
//	  "scenes": [
//	    {
//	      "id": "lobby",
//	      "title": "Main Lobby",
//	      "panorama": "images/floor1/lobby.jpg",
//	      "floor": 1,
//	      "hotSpots": [
//	        {"pitch": -2.1, "yaw": 132.5, "type": "scene", "text": "To the hall", "sceneId": "hall"}
//	      ]
//	    }
//	  ]
//	}
//
// The viewer's native layout is accepted too: "scenes" may be an object keyed
// by scene id, settings may live under "default", and the start scene may be
// named "firstScene". Object key order is kept as declaration order.
//
// # Soft Failure
//
// Only document-level problems are returned as errors: a file that cannot be
// opened, or content that is not a JSON/YAML mapping with a "scenes" list.
// Everything else is recorded in [tour.Tour.ParseErrors] and loading carries
// on with the next record:
//
//   - A scene without id or image path is excluded as InvalidScene
//   - A navigation hotspot without target is excluded as InvalidHotspot
//   - A repeated scene id is excluded as DuplicateSceneId (first one wins)
//   - A non-integer floor is reported as InvalidFloor; the scene is kept
//
// # Graph Views
//
// [WriteView] and [ReadView] exchange the presentation-agnostic node/edge
// description of a tour graph, in the same JSON shape the report uses for
// its "graphView" field.
package io
