/*
Command removelines removes lines of sources from an xylist.

Contents

  Program overview
  Command line usage
  Configuration file
  File formats
  Algorithm outline


Program overview

Input is an xylist, a FITS file with a binary table of positions of sources
detected in an image.  Output is the same file with sources lying in
"lines" removed.  Lines are artifacts of the detector or optics, bad
columns, bleed trails and the like, that show up as many sources sharing
nearly the same x or nearly the same y.  Left in, they mislead programs
that match source patterns against star catalogs.

Sample run:

  removelines field.xyls field-clean.xyls
  removelines: Removed 37 sources

The table in the output file has the 37 sources removed, two HISTORY cards
noting the filtering, and the keyword REMLINEN = 37.  All other columns,
keywords and extensions are unchanged.


Command line usage

Invoking the program without command line arguments (or with invalid
arguments) shows this usage prompt.

  Usage: removelines [options] <input-xylist> <output-xylist>
         removelines -h                     display help
         removelines -v                     display version and copyright

  Options:
         -X <x-column>         default X
         -Y <y-column>         default Y
         -s <significance>     default 100
         -e <extension>        default 1
         -w <bin-width>        default 1
         -o <bin-offset>       default 0.5
         -exact                score bins with the true Poisson probability
         -c <config-file>

Options may come before or after the file names.  An exit status of 255
indicates a command line problem; in this case no output file is written.

The significance is a positive number.  Larger values require a bin to be
more improbable before it is considered a line, and so remove fewer sources.


Configuration file

Option defaults can be kept in a YAML file given with -c.  Options on the
command line take precedence.  All keys are optional.

  x_column: XIMAGE
  y_column: YIMAGE
  extension: 1
  cut: 100
  bin_width: 1
  bin_offset: 0.5
  exact: false


File formats

The input file must be FITS.  The extension selected with -e should be a
binary table with scalar numeric columns for x and y.  If the extension has
no data, or the table has no rows, the input is copied to the output
unchanged and a message is shown.  This is not an error.

Two companion commands are included.  Rlstat shows the bin statistics of
an xylist without writing anything, and mkxy writes synthetic xylists with
lines for testing.  See

  go doc github.com/soniakeys/removelines/rlstat
  go doc github.com/soniakeys/removelines/mkxy


Algorithm outline

1.  X coordinates are binned into bins of the bin width, with bin edges at
multiples of the bin width less the bin offset.  With the defaults, bins
are centered on integer pixel positions.

2.  Only occupied bins are considered.  The count of each, less one, is the
bin "excess."  The mean excess over occupied bins is taken as the rate of
a Poisson distribution shared by all bins.

3.  Each bin is scored as k ln(mean) - mean - k(k-1)/2 for excess k.  The
last term is a stand-in for ln k! that penalizes large counts more heavily
than the Poisson distribution would.  It is kept for compatibility with
earlier versions.  With -exact the true ln k! is used instead.

4.  Bins scoring below minus the significance are lines.  Sources in them
are marked.

5.  Steps 1 through 4 are repeated for Y.  Sources marked on either axis
are removed.

-------------
Public domain.
*/
package main
