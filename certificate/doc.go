// Package certificate defines the belief certificate: a signed-by-hash
// summary of falsification evidence for a program's claims.
//
// A certificate records, per claim, the statistical power of the trial
// campaign (failure count, trials run, rule-of-three upper bound) and a
// commitment to the RNG seed so the campaign can be reproduced. Its
// canonical hash is what a submitter escrows a bond against; anyone can
// recompute it from the JSON file and compare.
package certificate
