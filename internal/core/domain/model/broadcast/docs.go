// Package broadcast defines the typed channel scopes and event shapes pushed
// to real-time subscribers. Delivery itself lives in the broadcast adapter.
package broadcast
