/*
Command rlstat shows the line statistics of an xylist.

Rlstat reads an xylist and shows, for each axis, the histogram statistics
removelines bases its decisions on.  It writes no files, so it is a way
to try different significance cuts before filtering.

  Usage: rlstat [options] <xylist>

Options are the same as for removelines, with one more:

  -a    list all occupied bins, not just lines

Example output:

  File:        field.xyls
  Extension:   1
  Sources:     1120
  Cut:         100 (compat)

  X:  793 occupied bins, mean excess 0.4123
        Bin left   Count       Log-lik
            99.5      51      -1270.12 *
  X:  1 line, 51 sources

  Y:  801 occupied bins, mean excess 0.3983
  Y:  0 lines, 0 sources

  Removelines would remove 51 sources.

Bins marked with * are lines.  A source in lines on both axes is counted
once in the total.

-------------
Public domain.
*/
package main
