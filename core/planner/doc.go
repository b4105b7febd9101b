// Package planner turns a load request into a production plan.
//
// The pipeline runs in five steps:
//   - a UnitFilter drops units that cannot run (wind turbines without wind)
//   - FindFeasibleSubset looks for the first subset of the remaining units
//     whose summed pmin/pmax range brackets the load
//   - Distribute assigns pmin to every chosen unit and fills the rest greedily
//   - RoundOutputs and CorrectDrift round to 0.1 MW and push the residual onto
//     one unit so that the plan sums to the load
//   - Assemble maps the outputs back onto the full roster
//
// Unit selection ignores fuel prices and efficiency: the first feasible
// subset in exclude-before-include order wins.
package planner
