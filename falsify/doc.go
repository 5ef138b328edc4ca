// Package falsify runs adversarial trial campaigns against candidate
// implementations and summarizes the evidence for belief certificates.
//
// A campaign binds a claim definition (adversarial generator, oracle,
// trial budget) to one implementation. Trials are deterministic: every
// trial's RNG seed derives from the master seed, the claim id, and the
// trial index, so a published campaign can be replayed bit-for-bit from
// its RNG commitment.
//
// Inputs and outputs move as encoded bytes in the same wire form the
// dispute registry's verifiers consume. A failing trial therefore
// yields a ready-made evidence pair for Registry.Challenge.
package falsify
