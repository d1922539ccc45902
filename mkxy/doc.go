/*
Command mkxy writes synthetic xylists for trying out removelines.

Usage

Command line options:

  mkxy [options] <output-xylist>
  mkxy -v                         Display version and copyright.

  Options:
    -n <count>    sources spread uniformly over the image, default 1000
    -x <width>    image width in pixels, default 2048
    -y <height>   image height in pixels, default 2048
    -lx <column>  add a vertical line of sources at this x
    -ly <row>     add a horizontal line of sources at this y
    -ln <count>   sources per line, default 50
    -seed <n>     random seed, default 1

Output

The output is a FITS file with an empty primary HDU and a binary table
extension with columns X, Y and FLUX, all single precision.  IMAGEW and
IMAGEH record the image size.  Sources in a line lie within 0.2 pixels of
the line.  The same seed always produces the same file.

Example:

  mkxy -lx 100 -ly 733 lines.xyls
  removelines lines.xyls clean.xyls

-------------
Public domain.
*/
package main
