/*

Package base provides base data structures and functions for reviewgraph.

The base data structures and functions include:

* Dense Id Index

* Random Generator

* CSV Escaping

*/
package base
