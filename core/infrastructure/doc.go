// Package infrastructure models charging infrastructure as a three level
// tree: a Transformer owns ChargingPoints which own ConnectionPoints. Each
// node carries a power interval [MinPower, MaxPower]. Connection points hold
// at most one vehicle and compute the bounds within which that vehicle may
// charge, combining the point's hardware limits with the battery's charge
// acceptance at the current state of charge.
//
// Trees are built once, usually through the builder package, and are not
// modified afterwards apart from the vehicle slot of each connection point.
package infrastructure
