// Package rxnorm provides medication-terminology extensions: drug-drug
// interaction lookup, prescription-instruction (sig) parsing, and dose
// unit conversion.
package rxnorm
