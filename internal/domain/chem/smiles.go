// Package chem is the narrow chemical-structure interface consumed by the
// dataset pipeline: SMILES validation, atom counting for size filters,
// reaction-string assembly, and best-effort SMILES randomization used as a
// training-time augmentation.  It is deliberately not a full cheminformatics
// toolkit: the pipeline only needs token-level structure, never 3D geometry
// or canonicalization.
package chem

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/biocatlab/enzymeset/pkg/errors"
)

// ReactionSeparator splits reactant and product halves of a reaction string.
const ReactionSeparator = ">>"

// MoleculeSeparator joins the molecules of one reaction side.
const MoleculeSeparator = "."

// validSMILESChars defines the allowed character set for SMILES notation.
// This is a coarse screen; structural checks follow in ValidateSMILES.
var validSMILESChars = regexp.MustCompile(`^[A-Za-z0-9@+\-\[\]()=#/\\%.*:]+$`)

// twoLetterOrganic lists the organic-subset elements written with two letters
// outside brackets.
var twoLetterOrganic = map[string]bool{"Cl": true, "Br": true}

// singleLetterOrganic lists the organic-subset elements legal outside brackets.
var singleLetterOrganic = map[byte]bool{
	'B': true, 'C': true, 'N': true, 'O': true,
	'P': true, 'S': true, 'F': true, 'I': true,
}

// aromaticOrganic lists the aromatic (lowercase) organic-subset atoms.
var aromaticOrganic = map[byte]bool{
	'b': true, 'c': true, 'n': true, 'o': true, 'p': true, 's': true,
}

// ValidateSMILES performs character-set and bracket-balance validation.
// It does not guarantee chemical sanity, only lexical well-formedness.
func ValidateSMILES(smiles string) error {
	smiles = strings.TrimSpace(smiles)
	if smiles == "" {
		return errors.New(errors.ErrCodeInvalidSMILES, "SMILES string cannot be empty")
	}
	if !validSMILESChars.MatchString(smiles) {
		return errors.New(errors.ErrCodeInvalidSMILES, "SMILES contains invalid characters").
			WithDetail("smiles=" + smiles)
	}
	return validateBrackets(smiles)
}

// validateBrackets checks that all parentheses and square brackets are
// balanced and correctly nested.
func validateBrackets(smiles string) error {
	var stack []rune
	closers := map[rune]rune{')': '(', ']': '['}

	for _, ch := range smiles {
		switch ch {
		case '(', '[':
			stack = append(stack, ch)
		case ')', ']':
			if len(stack) == 0 || stack[len(stack)-1] != closers[ch] {
				return errors.New(errors.ErrCodeInvalidSMILES, "unmatched brackets in SMILES").
					WithDetail("smiles=" + smiles)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return errors.New(errors.ErrCodeInvalidSMILES, "unclosed brackets in SMILES").
			WithDetail("smiles=" + smiles)
	}
	return nil
}

// AtomCount returns the number of heavy-atom tokens in a SMILES string.
// Bracket atoms ([NH4+], [C@@H], ...) count as one atom each; hydrogens
// written inside brackets are not counted separately, matching the size
// semantics the reactant/product filters expect.
func AtomCount(smiles string) (int, error) {
	if err := ValidateSMILES(smiles); err != nil {
		return 0, err
	}

	count := 0
	for i := 0; i < len(smiles); {
		c := smiles[i]
		switch {
		case c == '[':
			end := strings.IndexByte(smiles[i:], ']')
			if end < 0 {
				return 0, errors.New(errors.ErrCodeSMILESParseFailed, "unterminated bracket atom").
					WithDetail("smiles=" + smiles)
			}
			count++
			i += end + 1
		case i+1 < len(smiles) && twoLetterOrganic[smiles[i:i+2]]:
			count++
			i += 2
		case singleLetterOrganic[c] || aromaticOrganic[c]:
			count++
			i++
		case c == '*':
			// Wildcard atom.
			count++
			i++
		case c == '%':
			// Two-digit ring-closure label.
			if i+2 >= len(smiles) {
				return 0, errors.New(errors.ErrCodeSMILESParseFailed, "truncated ring-closure label").
					WithDetail("smiles=" + smiles)
			}
			i += 3
		case c >= '0' && c <= '9':
			i++
		case c == '-' || c == '=' || c == '#' || c == '/' || c == '\\' ||
			c == '(' || c == ')' || c == '.' || c == '+' || c == '@' || c == ':':
			i++
		default:
			return 0, errors.New(errors.ErrCodeSMILESParseFailed, "unexpected SMILES token").
				WithDetail("smiles=" + smiles + " pos=" + string(c))
		}
	}
	return count, nil
}

// JoinMolecules assembles one side of a reaction string.
func JoinMolecules(mols []string) string {
	return strings.Join(mols, MoleculeSeparator)
}

// ReactionString assembles "reactants>>products" from molecule lists.
func ReactionString(reactants, products []string) string {
	return JoinMolecules(reactants) + ReactionSeparator + JoinMolecules(products)
}

// SplitReaction splits a reaction string into reactant and product molecule
// lists.  Exactly one ">>" separator is required.
func SplitReaction(reaction string) (reactants, products []string, err error) {
	parts := strings.Split(reaction, ReactionSeparator)
	if len(parts) != 2 {
		return nil, nil, errors.New(errors.ErrCodeInvalidReactionString, "reaction must contain exactly one '>>'").
			WithDetail("reaction=" + reaction)
	}
	return strings.Split(parts[0], MoleculeSeparator), strings.Split(parts[1], MoleculeSeparator), nil
}

// linearMolecule is an unbranched, acyclic SMILES decomposed into atom tokens
// and the bond symbols between them ("" for implicit single bonds).
type linearMolecule struct {
	atoms []string
	bonds []string // len(atoms)-1, bonds[i] sits between atoms[i] and atoms[i+1]
}

// tokenizeLinear decomposes a SMILES string into a linear chain.  Strings
// containing branches, ring closures, or multi-component separators are
// rejected: rotating those requires a full molecular graph, which is out of
// scope for this collaborator.
func tokenizeLinear(smiles string) (*linearMolecule, error) {
	if err := ValidateSMILES(smiles); err != nil {
		return nil, err
	}

	mol := &linearMolecule{}
	pendingBond := ""
	pushAtom := func(tok string) {
		if len(mol.atoms) > 0 {
			mol.bonds = append(mol.bonds, pendingBond)
		}
		mol.atoms = append(mol.atoms, tok)
		pendingBond = ""
	}

	for i := 0; i < len(smiles); {
		c := smiles[i]
		switch {
		case c == '[':
			end := strings.IndexByte(smiles[i:], ']')
			if end < 0 {
				return nil, errors.New(errors.ErrCodeSMILESParseFailed, "unterminated bracket atom").
					WithDetail("smiles=" + smiles)
			}
			pushAtom(smiles[i : i+end+1])
			i += end + 1
		case i+1 < len(smiles) && twoLetterOrganic[smiles[i:i+2]]:
			pushAtom(smiles[i : i+2])
			i += 2
		case singleLetterOrganic[c] || aromaticOrganic[c]:
			pushAtom(string(c))
			i++
		case c == '-' || c == '=' || c == '#':
			if pendingBond != "" || len(mol.atoms) == 0 {
				return nil, errors.New(errors.ErrCodeSMILESParseFailed, "dangling bond symbol").
					WithDetail("smiles=" + smiles)
			}
			pendingBond = string(c)
			i++
		default:
			// Branches, rings, stereo marks, separators: not a linear chain.
			return nil, errors.New(errors.ErrCodeRandomizationUnsupported, "molecule is not an unbranched chain").
				WithDetail("smiles=" + smiles)
		}
	}
	if pendingBond != "" {
		return nil, errors.New(errors.ErrCodeSMILESParseFailed, "trailing bond symbol").
			WithDetail("smiles=" + smiles)
	}
	if len(mol.atoms) == 0 {
		return nil, errors.New(errors.ErrCodeSMILESParseFailed, "no atoms in SMILES").
			WithDetail("smiles=" + smiles)
	}
	return mol, nil
}

// RandomizeRotated rewrites an unbranched acyclic SMILES into an equivalent
// non-canonical form by restarting the atom walk at a random position.  A
// restart at an interior atom emits the left arm as a branch, e.g. CCO
// rooted at the middle carbon becomes C(C)O.  Molecules with rings or
// branches return ErrCodeRandomizationUnsupported; callers treat the
// augmentation as best-effort and fall back to the original string.
func RandomizeRotated(smiles string, rng *rand.Rand) (string, error) {
	mol, err := tokenizeLinear(smiles)
	if err != nil {
		return "", err
	}

	n := len(mol.atoms)
	if n == 1 {
		return mol.atoms[0], nil
	}

	root := rng.Intn(n)
	var sb strings.Builder
	sb.WriteString(mol.atoms[root])

	if root == n-1 {
		// Terminal root: plain reversal, no branch needed.
		for i := n - 2; i >= 0; i-- {
			sb.WriteString(mol.bonds[i])
			sb.WriteString(mol.atoms[i])
		}
		return sb.String(), nil
	}

	// Left arm, walked outward from the root.
	if root > 0 {
		sb.WriteByte('(')
		for i := root - 1; i >= 0; i-- {
			sb.WriteString(mol.bonds[i])
			sb.WriteString(mol.atoms[i])
		}
		sb.WriteByte(')')
	}
	// Right arm.
	for i := root + 1; i < n; i++ {
		sb.WriteString(mol.bonds[i-1])
		sb.WriteString(mol.atoms[i])
	}
	return sb.String(), nil
}
