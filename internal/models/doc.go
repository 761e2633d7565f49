// Package models contains the model units bundled with modelrun.
//
// Each unit registers itself in model.Default from an init function, so
// importing this package makes the units available by name.
//
// Model1 projects GDP (PKB) from its expenditure components:
//
//	KI   private consumption
//	KS   public consumption
//	INW  investment
//	EKS  exports
//	IMP  imports
//
// Each component starts from its first-period value and grows by the matching
// tw* growth factor; PKB = KI + KS + INW + EKS - IMP for every period.
//
// Trend derives an index (first period = 100) and period-on-period change for
// a single series named X.
package models
