package oaisim

// Version of the simulator.
const Version = "0.1.0"
