package main

var tests = []Test{
	&S300001ListIncludesMarkerAtPrefix{},
	&S300002DelimitedPagination{},
	&S300003HeadPrefixWithoutMarker{},
	&S300004ListNoSuchBucket{},
	&S300005WalkCallCount{},
}
