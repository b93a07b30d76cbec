// Package physics turns hydraulic, penstock and mechanical readings into a
// PhysicsResult. Compute is a pure function: no side effects, no stored
// state, and every division guards its denominator so that no field is
// ever NaN or infinite.
//
// Order of evaluation: flow velocity, wave speed, surge, friction and head
// loss, hoop stress, power and performance, orbit eccentricity, bolt loads,
// then the turbine profile's axial thrust and volumetric loss.
//
// Wave speed uses a fixed water bulk modulus and density, independent of
// water temperature.
package physics
